package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background task whose lifecycle is owned by the application.
// Stop must block until the task has exited.
type Worker interface {
	Start()
	Stop()
}
