package hermes

import (
	"errors"
	"fmt"
)

var ErrPageRange = errors.New("invalid page range")

// Batch is the page span written to one workbook. Pages run from FirstPage
// up to, but not including, End. From is the aligned start used in the
// workbook name.
type Batch struct {
	From      int
	End       int
	FirstPage int
}

func (batch Batch) WorkbookName() string {
	return fmt.Sprintf("luoji_%d_%d.xlsx", batch.From, batch.End)
}

func (batch Batch) Pages() int {
	return batch.End - batch.FirstPage
}

// PlanBatches splits the run into workbooks of perWorkbook pages aligned to
// multiples of perWorkbook. lastPage is exclusive; zero means no bound. When
// lastPage falls inside the first span the run is that single, shortened
// batch.
func PlanBatches(start int, perWorkbook int, lastPage int, maxBatches int) ([]Batch, error) {
	if start < 0 || perWorkbook <= 0 || maxBatches <= 0 {
		return nil, fmt.Errorf("%w: start %d, %d pages per workbook, %d batches", ErrPageRange, start, perWorkbook, maxBatches)
	}

	if lastPage > 0 && lastPage <= start {
		return nil, fmt.Errorf("%w: last page %d must be after start page %d", ErrPageRange, lastPage, start)
	}

	batches := []Batch{}

	from := start - start%perWorkbook
	firstPage := start
	for len(batches) < maxBatches {
		end := from + perWorkbook
		if lastPage > 0 && end > lastPage {
			end = lastPage
		}

		batches = append(batches, Batch{
			From:      from,
			End:       end,
			FirstPage: firstPage,
		})

		if lastPage > 0 && end >= lastPage {
			break
		}

		from += perWorkbook
		firstPage = from
	}

	return batches, nil
}
