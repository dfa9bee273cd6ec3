package export

import "fmt"

// Column describes one field of a tabular export.
type Column struct {
	Key   string
	Label string
	// Width is a relative weight; zero means 1.
	Width float64
}

// Dataset defines tabular export content. Rows are keyed by Column.Key.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

// Labels returns the column headings in order.
func (d Dataset) Labels() []string {
	labels := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		labels[i] = col.Label
		if labels[i] == "" {
			labels[i] = col.Key
		}
	}
	return labels
}

// Record returns row values in column order.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		record[i] = row[col.Key]
	}
	return record
}

func (d Dataset) validate(format string) error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	return nil
}

func (d Dataset) widths(total float64) []float64 {
	var sum float64
	weights := make([]float64, len(d.Columns))
	for i, col := range d.Columns {
		weights[i] = col.Width
		if weights[i] <= 0 {
			weights[i] = 1
		}
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = total * weights[i] / sum
	}
	return weights
}
