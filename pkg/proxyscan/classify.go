package proxyscan

// DefaultExcluded are the codes that do not prove the proxy reached the
// port: probe failure, forbidden and service unavailable.
var DefaultExcluded = []Status{StatusFailure, "403", "503"}

// Classifier decides which results are worth reporting.
type Classifier struct {
	excluded map[Status]struct{}
}

// NewClassifier excludes the given codes. With no codes it uses
// DefaultExcluded. StatusFailure is always excluded.
func NewClassifier(codes ...Status) *Classifier {
	if len(codes) == 0 {
		codes = DefaultExcluded
	}
	c := &Classifier{excluded: make(map[Status]struct{}, len(codes)+1)}
	c.excluded[StatusFailure] = struct{}{}
	for _, code := range codes {
		c.excluded[code] = struct{}{}
	}
	return c
}

// DefaultClassifier uses DefaultExcluded.
func DefaultClassifier() *Classifier {
	return NewClassifier()
}

// Interesting reports whether the proxy relayed some application-level
// response for the port.
func (c *Classifier) Interesting(r ProbeResult) bool {
	_, skip := c.excluded[r.Status()]
	return !skip
}

// Excluded lists the excluded codes in no particular order.
func (c *Classifier) Excluded() []Status {
	out := make([]Status, 0, len(c.excluded))
	for code := range c.excluded {
		out = append(out, code)
	}
	return out
}
