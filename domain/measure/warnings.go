package measure

import "fmt"

// IngestWarning flags a row the ingestion layer accepted in degraded form,
// such as a filename that could not be split into the expected identifier
// shape. Callers see these alongside the dataset; nothing is silently kept.
type IngestWarning struct {
	File   string `json:"file"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (w IngestWarning) String() string {
	return fmt.Sprintf("row %d (%s): %s", w.Row, w.File, w.Reason)
}
