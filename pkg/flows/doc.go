/*
Package flows orchestrates flow persistence.

Manager serializes writes per flow across goroutines and, with a
DistributedLocker, across replicas. Every save bumps the flow revision and
reports what changed through LifecycleHooks.
*/
package flows
