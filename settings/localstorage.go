//go:build js
// +build js

package settings

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
)

// LocalStorage is the browser's window.localStorage. Access can throw in
// private browsing modes; those exceptions are returned as errors.
type LocalStorage struct {
	storage *js.Object
}

// NewLocalStorage returns the page's local storage, or nil when the browser
// does not expose one.
func NewLocalStorage() *LocalStorage {
	var storage *js.Object
	if err := guard(func() { storage = js.Global.Get("localStorage") }); err != nil {
		return nil
	}
	if storage == nil || storage == js.Undefined {
		return nil
	}
	return &LocalStorage{storage: storage}
}

func (l *LocalStorage) Get(key string) (value string, ok bool, err error) {
	err = guard(func() {
		v := l.storage.Call("getItem", key)
		if v == nil || v == js.Undefined {
			return
		}
		value, ok = v.String(), true
	})
	return value, ok, err
}

func (l *LocalStorage) Set(key, value string) error {
	return guard(func() { l.storage.Call("setItem", key, value) })
}

// guard turns a thrown JS exception into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(*js.Error); ok {
				err = fmt.Errorf("settings: %s", jsErr.Error())
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
