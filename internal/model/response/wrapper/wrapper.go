package wrapper

type ResponseWrapper struct {
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
}

type SuccessWrapper struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type ErrorWrapper struct {
	Message string `json:"message"`
	// Kind is the machine-readable error taxonomy value.
	Kind    string `json:"kind,omitempty"`
	Success bool   `json:"success"`
}
