package game

import (
	"math/rand/v2"
	"sort"
	"time"
)

// AddPlayer registers a player, or re-binds an existing one with the same id.
// Hosts join as spectators; everyone else lands on the smaller team.
func (s *State) AddPlayer(id, accountID, name string, isHost bool, at time.Time) (*Player, bool) {
	if existing, ok := s.Players[id]; ok {
		existing.IsConnected = true
		existing.connEpoch++
		return existing, true
	}
	if _, kicked := s.kicked[id]; kicked {
		return nil, false
	}
	if accountID != "" {
		if _, kicked := s.kicked[accountID]; kicked {
			return nil, false
		}
	}
	if s.Rules.MaxPlayers > 0 && len(s.Players) >= s.Rules.MaxPlayers {
		return nil, false
	}
	s.joinSeq++
	player := &Player{
		ID:          id,
		AccountID:   accountID,
		Name:        name,
		IsHost:      isHost,
		IsConnected: true,
		JoinedAt:    at,
		joinSeq:     s.joinSeq,
	}
	s.Players[id] = player
	if isHost {
		player.IsSpectator = true
		s.HostID = id
	} else {
		s.joinTeam(player, s.smallerTeam())
	}
	s.logEvent(at, "join", id, player.TeamID, map[string]any{"name": name, "host": isHost})
	return player, true
}

// RemovePlayer drops a player from the session. Removing the host promotes
// someone only while in the lobby.
func (s *State) RemovePlayer(id string, at time.Time) bool {
	player, ok := s.Players[id]
	if !ok {
		return false
	}
	s.leaveTeam(player)
	delete(s.Players, id)
	delete(s.Buzzer.Timestamps, id)
	if s.HostID == id {
		s.HostID = ""
		if s.Phase == PhaseLobby {
			s.promoteHost()
		}
	}
	s.logEvent(at, "leave", id, player.TeamID, nil)
	return true
}

func (s *State) promoteHost() {
	var next *Player
	for _, candidate := range s.orderedPlayers() {
		if candidate.IsConnected {
			next = candidate
			break
		}
	}
	if next == nil {
		return
	}
	next.IsHost = true
	s.HostID = next.ID
}

// AssignTeam moves a player onto teamID. Spectators are left untouched.
func (s *State) AssignTeam(id string, teamID TeamID) bool {
	player, ok := s.Players[id]
	if !ok || player.IsSpectator || !teamID.Valid() {
		return false
	}
	if player.TeamID == teamID {
		return false
	}
	s.leaveTeam(player)
	s.joinTeam(player, teamID)
	return true
}

func (s *State) SetReady(id string, ready bool) bool {
	player, ok := s.Players[id]
	if !ok || player.IsReady == ready {
		return false
	}
	player.IsReady = ready
	return true
}

// SetSpectator toggles spectator mode. Leaving spectator mode assigns the
// smaller team.
func (s *State) SetSpectator(id string, spectator bool) bool {
	player, ok := s.Players[id]
	if !ok || player.IsSpectator == spectator {
		return false
	}
	if spectator {
		s.leaveTeam(player)
		player.IsSpectator = true
		player.IsReady = false
		return true
	}
	player.IsSpectator = false
	s.joinTeam(player, s.smallerTeam())
	return true
}

func (s *State) SetConnected(id string, connected bool) bool {
	player, ok := s.Players[id]
	if !ok || player.IsConnected == connected {
		return false
	}
	player.IsConnected = connected
	if connected {
		player.connEpoch++
	}
	return true
}

// ConnEpoch identifies the player's current connection. It changes on every
// reconnect so a stale disconnect grace expiry can be recognized.
func (s *State) ConnEpoch(id string) int {
	if player, ok := s.Players[id]; ok {
		return player.connEpoch
	}
	return -1
}

// ShuffleTeams deals all non-spectators alternately onto the two teams in a
// random order.
func (s *State) ShuffleTeams(rng *rand.Rand) {
	ids := make([]string, 0, len(s.Players))
	for _, player := range s.orderedPlayers() {
		if player.IsSpectator {
			continue
		}
		ids = append(ids, player.ID)
	}
	if rng != nil {
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	} else {
		rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	for _, team := range s.Teams {
		team.Members = nil
	}
	for i, id := range ids {
		player := s.Players[id]
		player.TeamID = NoTeam
		if i%2 == 0 {
			s.joinTeam(player, Team1)
		} else {
			s.joinTeam(player, Team2)
		}
	}
}

// Kick removes a player and refuses future joins with the same identity.
func (s *State) Kick(id string, at time.Time) bool {
	player, ok := s.Players[id]
	if !ok {
		return false
	}
	s.kicked[id] = struct{}{}
	if player.AccountID != "" {
		s.kicked[player.AccountID] = struct{}{}
	}
	return s.RemovePlayer(id, at)
}

func (s *State) joinTeam(player *Player, teamID TeamID) {
	team := s.team(teamID)
	if team == nil {
		return
	}
	player.TeamID = teamID
	team.Members = append(team.Members, player.ID)
}

func (s *State) leaveTeam(player *Player) {
	team := s.team(player.TeamID)
	player.TeamID = NoTeam
	if team == nil {
		return
	}
	members := team.Members[:0]
	for _, id := range team.Members {
		if id != player.ID {
			members = append(members, id)
		}
	}
	team.Members = members
}

func (s *State) smallerTeam() TeamID {
	if len(s.team(Team2).Members) < len(s.team(Team1).Members) {
		return Team2
	}
	return Team1
}

func (s *State) orderedPlayers() []*Player {
	players := make([]*Player, 0, len(s.Players))
	for _, player := range s.Players {
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].joinSeq < players[j].joinSeq
	})
	return players
}

func (s *State) teamOf(id string) TeamID {
	if player, ok := s.Players[id]; ok {
		return player.TeamID
	}
	return NoTeam
}

func (s *State) isHost(id string) bool {
	return id != "" && s.HostID == id
}

// designated reports whether the player currently holds a role that the
// game is waiting on.
func (s *State) designated(id string) bool {
	switch s.Phase {
	case PhaseFaceoff:
		return id == s.Faceoff.Player1ID || id == s.Faceoff.Player2ID || id == s.Faceoff.CurrentAnswerer
	case PhaseFastMoney:
		return id == s.FastMoney.Player1ID || id == s.FastMoney.Player2ID
	}
	return false
}

// memberAt returns the player at index within the team's rotation, wrapping.
func (s *State) memberAt(teamID TeamID, index int) string {
	team := s.team(teamID)
	if team == nil || len(team.Members) == 0 {
		return ""
	}
	if index < 0 {
		index = 0
	}
	return team.Members[index%len(team.Members)]
}

func (s *State) teamsReady() bool {
	return len(s.team(Team1).Members) > 0 && len(s.team(Team2).Members) > 0
}
