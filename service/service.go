// Package service provides clients for the remote translation service.
package service

import "github.com/ZaguanLabs/calinga"

// Service is an alias to the main package interface for convenience.
type Service = calinga.Service

// FetchResult is an alias to the main package type.
type FetchResult = calinga.FetchResult
