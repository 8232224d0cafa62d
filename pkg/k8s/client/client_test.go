// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func resetClient() {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
	kubeconfigPath = ""
}

func TestBuildKubeClient_PathResolution(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
		errorContains string
	}{
		{
			name:          "explicit invalid path",
			kubeconfigArg: "/nonexistent/path/to/kubeconfig",
			errorContains: "failed to build kube config",
		},
		{
			name:          "env var with invalid path",
			kubeconfigEnv: "/nonexistent/env/kubeconfig",
			errorContains: "failed to build kube config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.kubeconfigEnv)

			_, _, err := BuildKubeClient(tt.kubeconfigArg)
			if err == nil {
				t.Fatal("BuildKubeClient() expected error")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("BuildKubeClient() error = %v, want error containing %q", err, tt.errorContains)
			}
		})
	}
}

func TestBuildKubeClient_InvalidFile(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "kubeconfig")
	if err := os.WriteFile(invalid, []byte("invalid yaml content"), 0o600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	_, _, err := BuildKubeClient(invalid)
	if err == nil {
		t.Fatal("BuildKubeClient() with invalid config should return error")
	}
	if !strings.Contains(err.Error(), "failed to build kube config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetKubeClient_UsesSetKubeconfig(t *testing.T) {
	resetClient()
	defer resetClient()

	SetKubeconfig("/nonexistent/kubeconfig")
	_, _, err := GetKubeClient()
	if err == nil || !strings.Contains(err.Error(), "/nonexistent/kubeconfig") {
		t.Errorf("expected error naming the configured path, got %v", err)
	}
}

func TestGetKubeClient_Singleton(t *testing.T) {
	resetClient()
	defer resetClient()

	client1, config1, err1 := GetKubeClient()
	client2, config2, err2 := GetKubeClient()

	// nolint:errorlint // pointer equality is the point
	if err1 != err2 {
		t.Errorf("GetKubeClient() should return same error instance: first=%v, second=%v", err1, err2)
	}
	if client1 != client2 {
		t.Error("GetKubeClient() should return the same client instance")
	}
	if config1 != config2 {
		t.Error("GetKubeClient() should return the same config instance")
	}
}

func TestGetKubeClient_Concurrent(t *testing.T) {
	resetClient()
	defer resetClient()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = GetKubeClient()
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		// nolint:errorlint // pointer equality is the point
		if errs[i] != errs[0] {
			t.Errorf("goroutine %d saw a different result", i)
		}
	}
}
