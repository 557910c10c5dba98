package registry

import "gopkg.in/yaml.v2"

// EncodeYAML renders src in the alternate YAML form compositions can be
// authored and exchanged in, alongside JSON.
func EncodeYAML(src *Source) ([]byte, error) {
	return yaml.Marshal(src)
}

// DecodeYAML is EncodeYAML's inverse.
func DecodeYAML(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, err
	}
	return &src, nil
}
