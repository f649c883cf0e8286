package ecs

// System is a unit of per-frame behaviour. Implementations are usually structs
// whose exported Query and Singleton fields the Scheduler binds on Register;
// other fields keep state between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
