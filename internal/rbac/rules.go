package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"viewer": {
		"rubric:view",
		"candidate:view",
		"evaluation:view",
		"report:view",
	},
	"evaluator": {
		"rubric:*",
		"candidate:*",
		"evaluation:*",
		"report:*",
	},
	// auditor pulls reports and the event log without reading live records
	"auditor": {
		"report:export",
		"events:view",
	},
	"admin": {
		"*", // everything
	},
}
