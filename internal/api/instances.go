package api

import (
	"net/http"

	"github.com/seantiz/rtwork/internal/worker"
)

func (s *Server) handleListInstances(w http.ResponseWriter, _ *http.Request) {
	var infos []worker.InstanceInfo
	if s.instances != nil {
		infos = s.instances.Instances()
	}
	if infos == nil {
		infos = []worker.InstanceInfo{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}
