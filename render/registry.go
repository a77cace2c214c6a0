// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEngine is returned by NewEngine for unregistered names.
var ErrUnknownEngine = errors.New("render: unknown engine")

// EngineFactory creates an engine on the host's device.
// Factories that do not need a GPU ignore dh.
type EngineFactory func(dh DeviceHandle) (Engine, error)

var (
	registryMu sync.RWMutex
	engines    = make(map[string]EngineFactory)
)

// Register registers an engine factory under name. It is typically
// called from init() in engine packages:
//
//	func init() {
//	    render.Register("software", func(render.DeviceHandle) (render.Engine, error) {
//	        return NewEngine(), nil
//	    })
//	}
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory EngineFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("render: Register factory is nil")
	}
	if _, dup := engines[name]; dup {
		panic("render: Register called twice for " + name)
	}
	engines[name] = factory
}

// Unregister removes an engine from the registry. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(engines, name)
}

// NewEngine creates an engine by registered name.
func NewEngine(name string, dh DeviceHandle) (Engine, error) {
	registryMu.RLock()
	factory, ok := engines[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownEngine, name)
	}
	if dh == nil {
		dh = NullDeviceHandle{}
	}
	return factory(dh)
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether an engine with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := engines[name]
	return ok
}

// enginePriority orders engines for Default, best first. The recording
// engine never draws and is only created by name.
var enginePriority = []string{"wgpu", "software"}

// Default creates the best registered engine that accepts dh and returns
// it with its name. An engine whose factory fails (a GPU engine handed a
// NullDeviceHandle, for example) is skipped.
func Default(dh DeviceHandle) (Engine, string, error) {
	var errs []error
	for _, name := range enginePriority {
		if !IsRegistered(name) {
			continue
		}
		e, err := NewEngine(name, dh)
		if err == nil {
			return e, name, nil
		}
		Logger().Debug("render: engine unavailable", "engine", name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if len(errs) == 0 {
		return nil, "", fmt.Errorf("%w: none registered", ErrUnknownEngine)
	}
	return nil, "", errors.Join(errs...)
}
