package nn

import (
	"fmt"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// StateDict flattens a module's parameters into a name-to-tensor map.
// Names are "<prefix>.<index>.<param-name>" following the order of
// Parameters(), which is stable for a given architecture.
func StateDict[B tensor.Backend](prefix string, m Module[B]) map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, p := range m.Parameters() {
		key := fmt.Sprintf("%s.%d.%s", prefix, i, p.Name())
		stateDict[key] = p.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict copies tensors from a state dict into a module's
// parameters, matching by the same naming scheme StateDict uses.
// Shapes must agree exactly.
func LoadStateDict[B tensor.Backend](prefix string, m Module[B], stateDict map[string]*tensor.RawTensor) error {
	params := m.Parameters()
	for i, p := range params {
		key := fmt.Sprintf("%s.%d.%s", prefix, i, p.Name())
		raw, ok := stateDict[key]
		if !ok {
			return fmt.Errorf("state dict missing parameter %q", key)
		}
		dst := p.Tensor()
		if !dst.Shape().Equal(raw.Shape()) {
			return fmt.Errorf("parameter %q: shape %v does not match checkpoint shape %v", key, dst.Shape(), raw.Shape())
		}
		if dst.DType() != raw.DType() {
			return fmt.Errorf("parameter %q: dtype %s does not match checkpoint dtype %s", key, dst.DType(), raw.DType())
		}
		copy(dst.Raw().Data(), raw.Data())
	}
	return nil
}
