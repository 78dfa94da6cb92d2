package labels

// Label keys use the emc.dev prefix.
const (
	// KeyName is the registry name of the server a resource belongs to.
	KeyName = "emc.dev/name"

	// KeyManagedBy identifies the tool that created the resource.
	KeyManagedBy = "emc.dev/managed-by"

	// KeyVersion is the emc version that created the resource.
	KeyVersion = "emc.dev/version"
)

// ManagedByEMC is the KeyManagedBy value.
const ManagedByEMC = "emc"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder starts a label set tagged as managed by emc.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyManagedBy: ManagedByEMC,
		},
	}
}

// WithName adds the registry name.
func (lb *LabelBuilder) WithName(name string) *LabelBuilder {
	if name != "" {
		lb.labels[KeyName] = name
	}
	return lb
}

// WithVersion adds the tool version.
func (lb *LabelBuilder) WithVersion(version string) *LabelBuilder {
	if version != "" {
		lb.labels[KeyVersion] = version
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
