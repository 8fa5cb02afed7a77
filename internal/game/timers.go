package game

import "time"

// startTimer arms a countdown. The owning Session delivers one tick per
// second tagged with the generation current at scheduling time.
func (s *State) startTimer(kind TimerKind, seconds int) {
	s.timerGen++
	s.Timer = TimerState{Active: true, Seconds: seconds, Kind: kind}
	s.tickDue = true
	if kind == TimerFastMoney {
		s.FastMoney.TimerSeconds = seconds
	}
}

// cancelTimer invalidates any outstanding tick by bumping the generation.
func (s *State) cancelTimer() {
	if s.Timer.Active {
		s.timerGen++
	}
	s.Timer = TimerState{}
	s.tickDue = false
}

func (s *State) TimerGeneration() uint64 {
	return s.timerGen
}

// TakeTick reports whether a tick must be scheduled and for which
// generation, clearing the request.
func (s *State) TakeTick() (uint64, bool) {
	if !s.tickDue || !s.Timer.Active {
		s.tickDue = false
		return 0, false
	}
	s.tickDue = false
	return s.timerGen, true
}

// Tick applies one elapsed second. Ticks from a stale generation are ignored.
func (s *State) Tick(gen uint64, at time.Time) bool {
	if gen != s.timerGen || !s.Timer.Active {
		return false
	}
	s.Timer.Seconds--
	if s.Timer.Kind == TimerFastMoney {
		s.FastMoney.TimerSeconds = s.Timer.Seconds
	}
	if s.Timer.Seconds > 0 {
		s.tickDue = true
		return true
	}
	kind := s.Timer.Kind
	s.cancelTimer()
	s.logEvent(at, "timerExpired", "", NoTeam, map[string]any{"kind": string(kind)})
	switch kind {
	case TimerFaceoff:
		s.faceoffTimeout(at)
	case TimerFastMoney:
		if s.Phase == PhaseFastMoney {
			s.endFastMoneyTurn(at)
		}
	}
	return true
}
