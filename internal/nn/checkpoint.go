package nn

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/serialization"
	"github.com/lucent-ml/lucent/internal/tensor"
)

// Save writes a module's state dict to a checkpoint file. The prefix
// namespaces the parameters and is stored as the checkpoint's model
// type.
func Save[B tensor.Backend](path, prefix string, m Module[B], metadata map[string]string) error {
	return serialization.WriteFile(path, StateDict(prefix, m), prefix, metadata)
}

// Load restores a module's parameters from a checkpoint file written
// by Save with the same prefix. The module's architecture must match
// the checkpoint.
func Load[B tensor.Backend](path, prefix string, m Module[B], backend B) error {
	stateDict, header, err := serialization.ReadFile(path, backend)
	if err != nil {
		return err
	}
	if header.ModelType != prefix {
		return fmt.Errorf("checkpoint holds %q, want %q", header.ModelType, prefix)
	}
	return LoadStateDict(prefix, m, stateDict)
}
