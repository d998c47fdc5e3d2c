package enrollment

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Views — последние показанные списки "Мои курсы" по email.
// Живут в памяти процесса, вытесняются по LRU и TTL.
// Запись и Prune идут под одной блокировкой: Prune не может
// затереть список, сохранённый между его чтением и записью.
type Views struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Resolution]
}

func NewViews(maxSize int, ttl time.Duration) *Views {
	return &Views{cache: expirable.NewLRU[string, Resolution](maxSize, nil, ttl)}
}

func (v *Views) Get(email string) (Resolution, bool) {
	return v.cache.Get(email)
}

func (v *Views) Store(email string, res Resolution) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache.Add(email, res)
}

// Prune убирает курс из показанного списка, если он там есть.
func (v *Views) Prune(email, courseID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	res, ok := v.cache.Get(email)
	if !ok {
		return
	}
	v.cache.Add(email, res.without(courseID))
}

// Forget сбрасывает список: после записи его нужно перестроить.
func (v *Views) Forget(email string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache.Remove(email)
}
