package chain

// Verify walks the chain from the first block after genesis and checks that
// every block's stored hash matches its contents and that it references its
// predecessor's hash. The first violation is returned as a *ValidationError.
//
// Proof-of-work is not re-checked here: a block whose payload was changed and
// whose hash was recomputed is caught by its successor's link, not by its
// own digest. Tampering with the last block and recomputing its hash cannot be
// detected without an externally recorded head hash.
func (c *Chain[T]) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return ErrEmptyChain
	}

	for i := 1; i < len(c.blocks); i++ {
		current := &c.blocks[i]
		previous := &c.blocks[i-1]

		expected, err := current.ComputeHash()
		if err != nil {
			return &ValidationError{Index: i, Reason: ReasonUnserializable, Err: err}
		}
		if !expected.Equal(current.Hash) {
			return &ValidationError{Index: i, Reason: ReasonHashMismatch}
		}
		if !current.PreviousHash.Equal(previous.Hash) {
			return &ValidationError{Index: i, Reason: ReasonBrokenLink}
		}
	}

	return nil
}

// IsValid reports whether Verify finds no violation.
func (c *Chain[T]) IsValid() bool {
	return c.Verify() == nil
}
