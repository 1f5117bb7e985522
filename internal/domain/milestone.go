package domain

type MilestoneStatus string

const (
	MilestonePlanned MilestoneStatus = "planned"
	MilestoneDone    MilestoneStatus = "done"
)

func (s MilestoneStatus) Valid() bool {
	return s == MilestonePlanned || s == MilestoneDone
}

// Milestone groups tasks within a project. On the board it acts as a
// read-side filter only.
type Milestone struct {
	ID        string          `db:"id" json:"id"`
	ProjectID string          `db:"project_id" json:"-"`
	Name      string          `db:"name" json:"name"`
	Status    MilestoneStatus `db:"status" json:"status"`
	DueDate   *string         `db:"due_date" json:"due_date"`
	SortOrder int             `db:"sort_order" json:"-"`
	CreatedBy string          `db:"created_by" json:"-"`
}
