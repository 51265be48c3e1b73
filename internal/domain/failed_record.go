package domain

// FailedRecord is a draft that could not be persisted during bulk import,
// paired with its position in the reconciled batch and the failure reason.
type FailedRecord struct {
	Index  int
	Reason string
	Draft  Order
}
