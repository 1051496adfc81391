package types

import "encoding/json"

// ServerCounters soaks up counter fields that clients echo back from a read
// payload so strict decoding accepts them. The values are never used; only
// the taxonomy engine writes counters.
type ServerCounters struct {
	ProductCount json.RawMessage `json:"product_count,omitempty" validate:"-"`
	LikesCount   json.RawMessage `json:"likes_count,omitempty" validate:"-"`
}
