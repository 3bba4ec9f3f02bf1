// Package types provides the shared type definitions for the nexuscore
// memory engine: conversation turns, per-tier context slots, and the
// coded error taxonomy used at collaborator boundaries.
package types
