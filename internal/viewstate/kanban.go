package viewstate

import (
	"sync"

	"github.com/evanschultz/agenda/internal/domain"
)

// KanbanFetchCap bounds the single unpaginated board fetch.
const KanbanFetchCap = 1000

// Lane is one board column of tasks sharing a status.
type Lane struct {
	Status domain.Status
	Tasks  []domain.Task
}

// Board is the four-lane partition of a full task load.
type Board struct {
	Lanes []Lane
	// Dropped counts tasks whose status matched no lane.
	Dropped int
}

// BuildBoard partitions tasks into lanes ordered pendente, em_andamento, concluida, adiada.
// Tasks with any other status are left out of every lane.
func BuildBoard(tasks []domain.Task) Board {
	statuses := domain.Statuses()
	board := Board{Lanes: make([]Lane, len(statuses))}
	index := make(map[domain.Status]int, len(statuses))
	for i, status := range statuses {
		board.Lanes[i] = Lane{Status: status, Tasks: []domain.Task{}}
		index[status] = i
	}
	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			board.Dropped++
			continue
		}
		board.Lanes[i].Tasks = append(board.Lanes[i].Tasks, task)
	}
	return board
}

// LaneIndex returns the lane position for status, or -1.
func (b Board) LaneIndex(status domain.Status) int {
	for i, lane := range b.Lanes {
		if lane.Status == status {
			return i
		}
	}
	return -1
}

// Find locates one task by id.
func (b Board) Find(id string) (lane int, row int, ok bool) {
	for li, l := range b.Lanes {
		for ri, task := range l.Tasks {
			if task.ID == id {
				return li, ri, true
			}
		}
	}
	return -1, -1, false
}

// TaskAt returns the task at one lane/row position.
func (b Board) TaskAt(lane, row int) (domain.Task, bool) {
	if lane < 0 || lane >= len(b.Lanes) {
		return domain.Task{}, false
	}
	tasks := b.Lanes[lane].Tasks
	if row < 0 || row >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[row], true
}

// Total returns the number of tasks placed in lanes.
func (b Board) Total() int {
	total := 0
	for _, lane := range b.Lanes {
		total += len(lane.Tasks)
	}
	return total
}

// LoadGuard suppresses overlapping board loads.
type LoadGuard struct {
	mu       sync.Mutex
	last     uint64
	inFlight uint64
}

// Begin starts a load and returns its token; it returns false while another load is in flight.
func (g *LoadGuard) Begin() (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight != 0 {
		return 0, false
	}
	g.last++
	g.inFlight = g.last
	return g.inFlight, true
}

// End releases the guard when token is the in-flight load.
func (g *LoadGuard) End(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token == 0 || token != g.inFlight {
		return false
	}
	g.inFlight = 0
	return true
}

// InFlight reports whether a load is running.
func (g *LoadGuard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight != 0
}
