package backend

import (
	"fmt"
	"os"
	"slices"
	"sync"
)

// Registry maps artifact formats onto their decoders.
type Registry struct {
	decoders map[Format]Decoder
	mu       sync.RWMutex
}

// NewRegistry creates a new decoder registry.
func NewRegistry(decoders ...Decoder) (*Registry, error) {
	r := &Registry{
		decoders: make(map[Format]Decoder),
	}
	for _, d := range decoders {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a decoder to the registry.
func (r *Registry) Register(d Decoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[d.Format()]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.Format())
	}
	r.decoders[d.Format()] = d

	return nil
}

// Get retrieves a decoder by format.
func (r *Registry) Get(format Format) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[format]
	return d, ok
}

// Formats returns the registered formats, sorted.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.decoders))
	for f := range r.decoders {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	return formats
}

// Decode picks the decoder named by the artifact header and decodes data.
func (r *Registry) Decode(data []byte) (Predictor, error) {
	header, err := ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	d, ok := r.Get(header.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFormat, header.Format, r.Formats())
	}

	p, err := d.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, header.Format, err)
	}

	return p, nil
}

// Load reads and decodes the artifact at path.
func (r *Registry) Load(path string) (Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	return r.Decode(data)
}
