package model

import "time"

// CycleReport collects every action result of one reinvestment cycle, in order.
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []ActionResult
}

// Add appends a result to the report.
func (c *CycleReport) Add(res ActionResult) {
	c.Results = append(c.Results, res)
}

// Sent counts transactions that were sent successfully.
func (c *CycleReport) Sent() int {
	n := 0
	for i := range c.Results {
		if c.Results[i].IsTx() && !c.Results[i].Skipped && c.Results[i].OK() {
			n++
		}
	}
	return n
}

// Skipped counts actions that had nothing to do.
func (c *CycleReport) Skipped() int {
	n := 0
	for i := range c.Results {
		if c.Results[i].Skipped {
			n++
		}
	}
	return n
}

// Failed counts actions that returned an error.
func (c *CycleReport) Failed() int {
	n := 0
	for i := range c.Results {
		if !c.Results[i].OK() {
			n++
		}
	}
	return n
}

// Duration is the wall-clock time the cycle took.
func (c *CycleReport) Duration() time.Duration {
	return c.FinishedAt.Sub(c.StartedAt)
}
