package linekeeper

import (
	"errors"
	"sync"
)

// Keeping track of all open Keeper instances by their name.
var registry = new(sync.Map)

// Register the Keeper to the registry if it's not yet created,
// else return the registered one.
func register(name string, keeper *Keeper) (k *Keeper, new bool) {
	val, loaded := registry.LoadOrStore(name, keeper)
	return val.(*Keeper), !loaded
}

// Unregister the Keeper of a given name, if it is still the registered one.
func unregister(name string, keeper *Keeper) {
	registry.CompareAndDelete(name, keeper)
}

// Lookup returns the open [Keeper] registered under name.
func Lookup(name string) (*Keeper, bool) {
	val, ok := registry.Load(name)
	if !ok {
		return nil, false
	}
	return val.(*Keeper), true
}

// CloseAll closes every open [Keeper], flushing their pending lines.
func CloseAll() error {
	var keepers []*Keeper
	registry.Range(func(_, val any) bool {
		keepers = append(keepers, val.(*Keeper))
		return true
	})
	var errs []error
	for _, k := range keepers {
		if err := k.Close(); err != nil && !errors.Is(err, ErrKeeperClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
