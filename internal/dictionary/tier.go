package dictionary

// Tier identifies which layer satisfied a lookup.
type Tier string

const (
	TierCache  Tier = "cache"
	TierLocal  Tier = "local"
	TierOxford Tier = "oxford"
)

func (t Tier) String() string {
	return string(t)
}
