package broadcast

import "github.com/Dosada05/poker-club/metrics"

const (
	MessageResultsUpdated    = "RESULTS_UPDATED"
	MessageScoreboardUpdated = "SCOREBOARD_UPDATED"

	ScoreboardRoom = "scoreboard"
)

// TournamentRoom is the room name for viewers of one tournament page.
func TournamentRoom(tournamentID string) string {
	return "tournament_" + tournamentID
}

// Notifier publishes result changes to the tournament and scoreboard rooms.
type Notifier struct {
	hub     *Hub
	metrics metrics.Metrics
}

func NewNotifier(hub *Hub, m metrics.Metrics) *Notifier {
	return &Notifier{hub: hub, metrics: m}
}

// ResultsUpdated never blocks and never fails; slow clients simply miss the message.
func (n *Notifier) ResultsUpdated(tournamentID string) {
	room := TournamentRoom(tournamentID)
	n.publish(room, Message{
		Type:    MessageResultsUpdated,
		Payload: map[string]string{"tournament_id": tournamentID},
		RoomID:  room,
	})
	n.publish(ScoreboardRoom, Message{Type: MessageScoreboardUpdated, RoomID: ScoreboardRoom})
}

func (n *Notifier) publish(room string, msg Message) {
	if n.hub.BroadcastToRoom(room, msg) > 0 && n.metrics != nil {
		n.metrics.IncBroadcastsSent()
	}
}
