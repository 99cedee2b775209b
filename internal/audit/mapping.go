package audit

import "strings"

// ActionResource is the audit vocabulary for one RPC.
type ActionResource struct {
	Action   string
	Resource string
}

// Login, Refresh and Revoke are recorded as session events so consumers can follow a session
// across rotations.
var overrides = map[string]ActionResource{
	"/eventflow.auth.v1.AuthService/Register":          {Action: "register", Resource: "user"},
	"/eventflow.auth.v1.AuthService/Login":             {Action: "login", Resource: "session"},
	"/eventflow.auth.v1.AuthService/Refresh":           {Action: "refresh", Resource: "session"},
	"/eventflow.auth.v1.AuthService/Revoke":            {Action: "logout", Resource: "session"},
	"/eventflow.auth.v1.AuthService/RevokeAccessToken": {Action: "revoke", Resource: "access_token"},
	"/eventflow.admin.v1.AdminService/DeactivateUser":  {Action: "deactivate", Resource: "user"},
}

var verbs = []string{"Get", "List", "Create", "Update", "Delete", "Register", "Revoke", "Deactivate"}

var unknown = ActionResource{Action: "unknown", Resource: "unknown"}

// ParseFullMethod maps a gRPC full method such as /eventflow.auth.v1.AuthService/Login to an
// audit action and resource. Unlisted methods take the action from the leading verb of the
// method name and the resource from the service name (AdminService -> admin).
func ParseFullMethod(fullMethod string) ActionResource {
	if ar, ok := overrides[fullMethod]; ok {
		return ar
	}
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return unknown
	}
	service, method := fullMethod[:slash], fullMethod[slash+1:]
	ar := ActionResource{Action: actionOf(method), Resource: "unknown"}
	if dot := strings.LastIndex(service, "."); dot >= 0 {
		if name := strings.TrimSuffix(service[dot+1:], "Service"); name != "" {
			ar.Resource = strings.ToLower(name[:1]) + name[1:]
		}
	}
	return ar
}

func actionOf(method string) string {
	for _, v := range verbs {
		if strings.HasPrefix(method, v) {
			return strings.ToLower(v)
		}
	}
	return strings.ToLower(method)
}
