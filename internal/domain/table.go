package domain

// Table is a dining table of the floor plan.
type Table struct {
	ID     int
	Number int
	Status TableStatus
}

func NewTable(number int) (*Table, error) {
	if err := ValidateTableNumber(number); err != nil {
		return nil, err
	}
	return &Table{Number: number, Status: TableAvailable}, nil
}

func ValidateTableNumber(number int) error {
	if number <= 0 {
		return ValidationError{Field: "table_number", Message: "table number must be a positive integer"}
	}
	return nil
}

func (t *Table) IsOccupied() bool {
	return t.Status == TableOccupied
}
