package game

// Scene is one screen of the game, dispatched through a single update entry
// point. Enter and Exit bracket the scene's time on top of the stack.
type Scene interface {
	Name() string
	Enter()
	Update(dt float64)
	Exit()
}

// StateStack owns the scene stack. It is a plain value handed to whoever
// needs to push, pop or replace scenes; there is no ambient global.
type StateStack struct {
	scenes []Scene
}

func NewStateStack() *StateStack {
	return &StateStack{}
}

func (s *StateStack) Len() int {
	return len(s.scenes)
}

func (s *StateStack) Top() Scene {
	if len(s.scenes) == 0 {
		return nil
	}
	return s.scenes[len(s.scenes)-1]
}

func (s *StateStack) Push(sc Scene) {
	s.scenes = append(s.scenes, sc)
	sc.Enter()
}

func (s *StateStack) Pop() Scene {
	if len(s.scenes) == 0 {
		return nil
	}
	top := s.scenes[len(s.scenes)-1]
	s.scenes = s.scenes[:len(s.scenes)-1]
	top.Exit()
	return top
}

// Replace swaps the top scene for another in one step.
func (s *StateStack) Replace(sc Scene) {
	s.Pop()
	s.Push(sc)
}

// Update ticks the top scene only.
func (s *StateStack) Update(dt float64) {
	if top := s.Top(); top != nil {
		top.Update(dt)
	}
}
