package game

// fakeEntity and fakeWorld stand in for the host in package tests

type fakeEntity struct {
	name  string
	loc   WorldPoint
	text  string
	anims []int
}

func (f *fakeEntity) Name() string                { return f.name }
func (f *fakeEntity) Location() WorldPoint        { return f.loc }
func (f *fakeEntity) SetOverheadText(text string) { f.text = text }
func (f *fakeEntity) PlayAnimation(id int)        { f.anims = append(f.anims, id) }

type fakeWorld struct {
	entities []*fakeEntity
	local    string
	flags    map[WorldPoint]int
}

func newFakeWorld(local string) *fakeWorld {
	return &fakeWorld{local: local, flags: make(map[WorldPoint]int)}
}

func (w *fakeWorld) add(name string, x, y int) *fakeEntity {
	e := &fakeEntity{name: name, loc: WorldPoint{X: x, Y: y}}
	w.entities = append(w.entities, e)
	return e
}

func (w *fakeWorld) TileFlags(p WorldPoint) int { return w.flags[p] }

func (w *fakeWorld) LocalPlayer() Entity {
	for _, e := range w.entities {
		if e.name == w.local {
			return e
		}
	}
	return nil
}

func (w *fakeWorld) Players() []Entity {
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	return out
}
