package constants

// Lifecycle menggantikan pasangan is_active / is_deleted di semua entity katalog.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleArchived Lifecycle = "archived"
	LifecycleDeleted  Lifecycle = "deleted"
)

func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleActive, LifecycleArchived, LifecycleDeleted:
		return true
	}
	return false
}

func (l Lifecycle) IsActive() bool { return l == LifecycleActive }
