package validation

const employeeProperties = `{
	"fullName":    {"type": "string", "minLength": 1, "maxLength": 25, "pattern": "^[A-Za-z\\s]*$"},
	"email":       {"type": "string", "minLength": 1, "pattern": "^([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,})?$"},
	"dob":         {"type": "string", "minLength": 1, "maxLength": 20, "pattern": "^(\\d{2}-\\d{2}-\\d{4})?$", "format": "calendar-date"},
	"joiningDate": {"type": "string", "maxLength": 20, "pattern": "^(\\d{2}-\\d{2}-\\d{4})?$", "format": "calendar-date"},
	"address":     {"type": "string", "maxLength": 200}
}`

var employeeFields = []Field{
	{Name: "fullName", Messages: map[string]string{
		RuleRequired: "Full Name is required",
		RuleType:     "Full Name should be a type of text",
		RuleMin:      "Full Name is required",
		RuleMax:      "Full Name should have a maximum length of 25 characters",
		RulePattern:  "Full Name should contain only alphabets and spaces",
	}},
	{Name: "email", Messages: map[string]string{
		RuleRequired: "Email is required",
		RuleType:     "Email should be a type of text",
		RuleMin:      "Email is required",
		RulePattern:  "Email must be a valid email address",
	}},
	{Name: "dob", Messages: map[string]string{
		RuleRequired: "Date of Birth is required",
		RuleType:     "Date of Birth should be a valid date",
		RuleMin:      "Date of Birth is required",
		RuleMax:      "Date of Birth should have a maximum length of 20 characters",
		RulePattern:  "Date of Birth should be in the format DD-MM-YYYY",
		RuleFormat:   "Date of Birth is not a valid date",
	}},
	{Name: "joiningDate", Messages: map[string]string{
		RuleType:    "Joining Date should be a valid date",
		RuleMax:     "Joining Date should have a maximum length of 20 characters",
		RulePattern: "Joining Date should be in the format DD-MM-YYYY",
		RuleFormat:  "Joining Date is not a valid date",
	}},
	{Name: "address", Messages: map[string]string{
		RuleType: "Address should be a type of text",
		RuleMax:  "Address should have a maximum length of 200 characters",
	}},
}

// EmployeeFields lists the writable employee fields.
var EmployeeFields = []string{"fullName", "email", "dob", "joiningDate", "address"}

// EmployeeCreate validates a new employee record.
var EmployeeCreate = MustRuleSet("employee create",
	`{"type": "object", "properties": `+employeeProperties+`, "required": ["fullName", "email", "dob"]}`,
	employeeFields...)

// EmployeeUpdate validates a partial employee update: only submitted fields
// are checked.
var EmployeeUpdate = MustRuleSet("employee update",
	`{"type": "object", "properties": `+employeeProperties+`}`,
	employeeFields...)

// AdminSignup validates an admin signup request.
var AdminSignup = MustRuleSet("admin signup", `{
	"type": "object",
	"properties": {
		"fullname": {"type": "string", "maxLength": 25, "pattern": "^[A-Za-z\\s]*$"},
		"email":    {"type": "string", "minLength": 1, "pattern": "^([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,})?$"},
		"password": {"type": "string", "minLength": 8, "maxLength": 30, "format": "strong-password"}
	},
	"required": ["email", "password"]
}`,
	Field{Name: "fullname", Messages: map[string]string{
		RuleType:    "Full Name should be a type of text",
		RuleMax:     "Full Name should have a maximum length of 25 characters",
		RulePattern: "Full Name should contain only alphabets and spaces",
	}},
	Field{Name: "email", Messages: map[string]string{
		RuleRequired: "Email is required",
		RuleType:     "Email should be a type of text",
		RuleMin:      "Email is required",
		RulePattern:  "Email must be a valid email address",
	}},
	Field{Name: "password", Messages: map[string]string{
		RuleRequired: "Password is required",
		RuleType:     "Password should be a type of text",
		RuleMin:      "Password should have a minimum length of 8 characters",
		RuleMax:      "Password should have a maximum length of 30 characters",
		RuleFormat:   "Password must include at least one uppercase letter, one lowercase letter, one number, and one special character",
	}},
)
