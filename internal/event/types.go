package event

// SessionStartedData is the data for session.started events.
type SessionStartedData struct {
	SessionID  string `json:"sessionID"`
	Extensions int    `json:"extensions"`
}

// SessionEndedData is the data for session.ended events.
type SessionEndedData struct {
	SessionID string `json:"sessionID"`
}

// ExtensionEnteredData is the data for extension.entered events.
type ExtensionEnteredData struct {
	SessionID string `json:"sessionID"`
	Name      string `json:"name"`
}

// ExtensionLeftData is the data for extension.left events.
type ExtensionLeftData struct {
	SessionID string `json:"sessionID"`
	Name      string `json:"name"`
}

// CommandExecutedData is the data for command.executed events.
type CommandExecutedData struct {
	SessionID string `json:"sessionID"`
	Extension string `json:"extension"`
	Command   string `json:"command"`
}

// DocumentRejectedData is the data for document.rejected events.
type DocumentRejectedData struct {
	File   string   `json:"file"`
	Errors []string `json:"errors"`
}

// RegistryReloadedData is the data for registry.reloaded events.
type RegistryReloadedData struct {
	Extensions int `json:"extensions"`
	Rejected   int `json:"rejected"`
}
