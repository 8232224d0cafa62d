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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface so tests can pass the
// client-go fake clientset.
type Interface = kubernetes.Interface

var (
	clientOnce     sync.Once
	cachedClient   Interface
	cachedConfig   *rest.Config
	clientErr      error
	kubeconfigPath string
)

// SetKubeconfig selects the kubeconfig file GetKubeClient uses. It has no
// effect once the client has been created.
func SetKubeconfig(path string) {
	kubeconfigPath = path
}

// GetKubeClient returns a process-wide Kubernetes client, creating it on
// first call. Later calls return the cached client and error.
func GetKubeClient() (Interface, *rest.Config, error) {
	clientOnce.Do(func() {
		var cs *kubernetes.Clientset
		cs, cachedConfig, clientErr = BuildKubeClient(kubeconfigPath)
		if clientErr == nil {
			cachedClient = cs
		}
	})
	return cachedClient, cachedConfig, clientErr
}

// BuildKubeClient creates a Kubernetes client, bypassing the cache.
//
// An empty kubeconfig is discovered in order from the KUBECONFIG
// environment variable, ~/.kube/config, then the in-cluster service account.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err := os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	var (
		config *rest.Config
		err    error
	)
	// InClusterConfig directly avoids the "Neither --kubeconfig nor --master" warning
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return cs, config, nil
}
