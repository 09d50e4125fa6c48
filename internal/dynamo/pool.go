package dynamo

import "sync"

// StatePool recycles fixed-size scratch vectors between evaluations.
type StatePool struct {
	pool sync.Pool
	size int
}

func NewStatePool(size int) *StatePool {
	return &StatePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make(State, size)
			},
		},
	}
}

// Get returns a zeroed vector of the pool's size.
func (p *StatePool) Get() State {
	return p.pool.Get().(State)
}

func (p *StatePool) Put(s State) {
	if len(s) == p.size {
		for i := range s {
			s[i] = 0
		}
		p.pool.Put(s)
	}
}

func (p *StatePool) GetAndCopy(src State) State {
	dst := p.Get()
	copy(dst, src)
	return dst
}
