// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_Reload(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "reports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testReports), 0600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	d := New(NewRegistry(f))
	defer d.Close()

	reloads := make(chan error, 16)
	w, err := NewWatcher(d, WatcherConfig{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		OnReload: func(_ string, err error) { reloads <- err },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("x"), 0600))

	require.NoError(t, os.WriteFile(path, []byte(`reports: [{id: only, name: Only}]`), 0600))
	assert.Eventually(t, func() bool {
		_, err := d.Registry().Get("only")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, d.Registry().Len())
	drain(reloads)

	require.NoError(t, os.WriteFile(path, []byte(`reports: [{id: broken}]`), 0600))
	timeout := time.After(5 * time.Second)
	for rejected := false; !rejected; {
		select {
		case err := <-reloads:
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidReport)
				rejected = true
			}
		case <-timeout:
			t.Fatal("invalid file was not reported")
		}
	}
	_, err = d.Registry().Get("only")
	assert.NoError(t, err, "previous catalogue is kept when the new file is invalid")
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := New(NewRegistry(nil))
	defer d.Close()
	w, err := NewWatcher(d, WatcherConfig{Path: filepath.Join(t.TempDir(), "reports.yaml")})
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	_, err = NewWatcher(d, WatcherConfig{})
	assert.Error(t, err)
}

func drain(ch chan error) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
