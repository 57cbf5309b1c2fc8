package worker

import (
	"github.com/bookkeep/bookkeep/model"
)

type Worker interface {
	Run(c <-chan model.Job)
}
