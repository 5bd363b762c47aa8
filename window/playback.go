package window

// Playback is a Loop that replays a fixed sequence of events and then exits.
// It backs headless runs and tests, where no windowing system exists.
type Playback struct {
	events []Event
	stop   bool
}

func NewPlayback(events ...Event) *Playback {
	return &Playback{events: events}
}

// Frames returns a Playback that delivers AboutToWait n times, simulating n
// empty frames.
func Frames(n int) *Playback {
	events := make([]Event, n)
	for i := range events {
		events[i] = AboutToWait{}
	}
	return NewPlayback(events...)
}

func (p *Playback) Run(handler func(Event) error) error {
	for _, ev := range p.events {
		if p.stop {
			return nil
		}
		if err := handler(ev); err != nil {
			return err
		}
	}
	return nil
}

// RequestRedraw appends a RedrawRequested event to the playback.
func (p *Playback) RequestRedraw() {
	p.events = append(p.events, RedrawRequested{})
}

func (p *Playback) Exit() {
	p.stop = true
}
