package builder

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starconf/starconf/pkg/compiler"
)

// WriteDocument serializes a canonical value as YAML and writes it to path.
// Serialization is deterministic (sorted object keys), so rebuilt documents
// diff cleanly.
func WriteDocument(path string, doc compiler.Value) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return compiler.NewIOError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return compiler.NewIOError(path, err)
	}
	return nil
}
