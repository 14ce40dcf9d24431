package app

import (
	"sync"

	"github.com/Dommgrand/notesapp/internal/ports/repositories"
	"github.com/Dommgrand/notesapp/internal/ports/storage"
)

// Registry хранит экземпляры Workflow по идентификатору пользователя.
// Экземпляр создается лениво при первом обращении и удаляется при
// выходе пользователя; перезапуск процесса сбрасывает все состояние.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*Workflow

	notes repositories.NoteRepository
	blobs storage.BlobStore
}

// NewRegistry создает реестр рабочих процессов.
func NewRegistry(notes repositories.NoteRepository, blobs storage.BlobStore) *Registry {
	return &Registry{
		flows: make(map[string]*Workflow),
		notes: notes,
		blobs: blobs,
	}
}

// Get возвращает Workflow пользователя, создавая его при необходимости.
func (r *Registry) Get(userID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, ok := r.flows[userID]
	if !ok {
		flow = NewWorkflow(userID, r.notes, r.blobs)
		r.flows[userID] = flow
	}
	return flow
}

// Drop удаляет Workflow пользователя; вызывается при выходе.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.flows, userID)
	r.mu.Unlock()
}
