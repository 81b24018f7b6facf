package da

import "fmt"

// Region is the data of one boot stage, with its signature (if any) at the
// end. The zero value is an empty, unsigned region.
type Region struct {
	data        []byte
	sigLen      int
	loadAddr    uint32
	startOffset uint32
}

// NewRegion builds a Region out of a stage's data and the length of the
// signature trailing it.
func NewRegion(data []byte, sigLen int) (Region, error) {
	if sigLen < 0 || sigLen > len(data) {
		return Region{}, fmt.Errorf("%w: %d bytes of signature in %d byte region", ErrInvalidSignatureLength, sigLen, len(data))
	}
	return Region{data: data, sigLen: sigLen}, nil
}

// Data returns the whole region, signature included. The returned slice must
// not be modified.
func (r Region) Data() []byte { return r.data }

func (r Region) SigLen() int { return r.sigLen }

// LoadAddr is the address the stage gets uploaded to on the target.
func (r Region) LoadAddr() uint32 { return r.loadAddr }

func (r Region) StartOffset() uint32 { return r.startOffset }

func (r Region) HasSignature() bool { return r.sigLen > 0 }

// Split returns the payload and signature parts of the region. Both are views
// into Data. Signature is empty if the region is not signed.
func (r Region) Split() (payload, signature []byte) {
	cut := len(r.data) - r.sigLen
	return r.data[:cut:cut], r.data[cut:]
}

func (r Region) Payload() []byte {
	p, _ := r.Split()
	return p
}

func (r Region) Signature() []byte {
	_, s := r.Split()
	return s
}
