package meter

// GlobalPK is the partition marker shared by every reading. The store's
// secondary index is per-key, so a single constant key makes one time-ordered
// index cover the whole collection.
const GlobalPK = "READING"

// UnknownOwner is the sentinel label used when a reading carries no owner
// information at all (very old rows).
const UnknownOwner = "unknown"

// Reading is one recorded meter observation. StartKWh, EndKWh, DeltaKWh and
// TimestampMs are fixed at creation; a reading can be deleted but never
// edited.
type Reading struct {
	ID string

	// CreatedBy is the principal that submitted the reading. OwnerUsername
	// is who the consumption is attributed to; it differs from CreatedBy
	// only for on-behalf submissions.
	CreatedBy     string
	OwnerUsername string
	OnBehalf      bool

	// Username is the legacy display-name field kept for rows that predate
	// CreatedBy/OwnerUsername. New rows always set it to OwnerUsername.
	Username string

	StartKWh float64
	EndKWh   float64
	DeltaKWh float64

	Notes string

	// TimestampMs is UTC milliseconds since epoch, the sole ordering key.
	TimestampMs int64

	// Attributes carries optional free-form client metadata.
	Attributes map[string]any
}

// EffectiveOwner resolves who a reading belongs to across schema
// generations: OwnerUsername first, then the legacy Username field, then the
// unknown sentinel. All grouping and display code must go through this.
func (r Reading) EffectiveOwner() string {
	if r.OwnerUsername != "" {
		return r.OwnerUsername
	}
	if r.Username != "" {
		return r.Username
	}
	return UnknownOwner
}
