package worker

import (
	"github.com/bookkeep/bookkeep/model"
)

type WorkPool interface {
	Push(job model.Job)
}
