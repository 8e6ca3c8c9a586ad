package settings

import "github.com/fyrsmithlabs/projectd/internal/config"

// Generator produces settings documents from connection parameters.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator { return &Generator{} }

// WithServerDetails builds a document for the given server account.
// The password is stored in clear inside the document; callers must not log it.
func (g *Generator) WithServerDetails(serverURL, userName string, password config.Secret) Document {
	return Document{
		General: map[string]any{
			KeyServerURL: serverURL,
			KeyUsername:  userName,
			KeyPassword:  password.Value(),
			KeyProtocol:  ProtocolDefault,
		},
		Admin:   map[string]any{},
		Project: map[string]any{},
	}
}
