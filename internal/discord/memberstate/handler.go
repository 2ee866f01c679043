// Copyright 2020 diamondburned
// SPDX-License-Identifier: ISC
//
// This file is derived from github.com/diamondburned/ningen/v3/handlerrepo
// Licensed under the ISC License.
//
// Modified to track gateway handlers bound by the role watcher.

package memberstate

import (
	"sync"

	"github.com/diamondburned/arikawa/v3/utils/handler"
)

// SyncAdder binds handlers that run on the gateway's event loop.
type SyncAdder interface {
	AddSyncHandler(fn any) (cancel func())
}

var _ SyncAdder = (*handler.Handler)(nil)

// Repository binds handlers to a SyncAdder and remembers how to remove them.
type Repository struct {
	adder  SyncAdder
	mu     sync.Mutex
	cancel []func()
}

func NewRepository(adder SyncAdder) *Repository {
	return &Repository{
		adder: adder,
	}
}

// AddSyncHandler binds fn and returns the function that unbinds it.
func (r *Repository) AddSyncHandler(fn any) (cancel func()) {
	cancel = r.adder.AddSyncHandler(fn)
	r.track(cancel)

	return cancel
}

// Len returns the number of handlers currently bound.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cancel)
}

// Unbind removes every handler bound through the repository. It may be called
// more than once.
func (r *Repository) Unbind() {
	r.mu.Lock()
	cancels := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	for _, fn := range cancels {
		fn()
	}
}

func (r *Repository) track(cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel = append(r.cancel, cancel)
}
