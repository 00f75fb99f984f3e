package proc

// Anomaly flags a proc firing faster than an audit threshold.
type Anomaly struct {
	ProcID            int
	Name              string
	TriggersPerMinute float64
}

// ScanAnomalies returns every proc whose session fire rate exceeds
// maxPerMinute, in id order.
//
// The scan uses SessionTriggersPerMinute. The windowed rate reads 0 whenever
// session time lands on a whole second and would hide runaway procs.
func (e *Engine) ScanAnomalies(maxPerMinute float64) []Anomaly {
	var out []Anomaly
	for i := range e.slots {
		tpm := e.SessionTriggersPerMinute(i)
		if tpm > maxPerMinute {
			out = append(out, Anomaly{
				ProcID:            i,
				Name:              e.slots[i].def.Name,
				TriggersPerMinute: tpm,
			})
		}
	}
	return out
}
