package aggregates

// WriteTxOwnership says who opens and closes the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate: the aggregate write method runs its own transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy says which reads an aggregate may perform.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped limits reads to what a write needs to check its invariants.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
)

type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
