package game

// Open arms the buzzer for a new face-off attempt.
func (b *Buzzer) Open() {
	b.Active = true
	b.Locked = false
	b.WinnerID = ""
	b.Timestamps = make(map[string]int64)
}

// RecordBuzz accepts the buzz only while the buzzer is open. The first
// accepted buzz locks it; later buzzes are dropped, not compared.
func (b *Buzzer) RecordBuzz(playerID string, serverTimeMs int64) bool {
	if !b.Active || b.Locked {
		return false
	}
	if b.Timestamps == nil {
		b.Timestamps = make(map[string]int64)
	}
	if _, seen := b.Timestamps[playerID]; seen {
		return false
	}
	b.Timestamps[playerID] = serverTimeMs
	b.Locked = true
	b.Active = false
	b.WinnerID = playerID
	return true
}

func (b *Buzzer) Close() {
	b.Active = false
}
