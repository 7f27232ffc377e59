package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodog/binghome/pubsub/dummy"
	"github.com/oodog/binghome/services"
)

func TestUpdatePresence(t *testing.T) {
	em := &dummy.Publisher{}
	services.Publisher = em

	service := &Service{}
	service.Init()
	hosts := map[string]string{"phone.alex": "192.168.1.50"}

	// first sweep: answered, marked home
	service.update(hosts, map[string]bool{"phone.alex": true})
	if assert.Len(t, em.Events, 1) {
		assert.Equal(t, "home", em.Events[0].State())
		assert.Equal(t, "phone.alex", em.Events[0].Device())
	}

	// a few missed sweeps don't flap to away
	for i := 0; i < awayAfter-1; i++ {
		service.update(hosts, map[string]bool{})
	}
	assert.Len(t, em.Events, 1)

	// one more and it's away
	service.update(hosts, map[string]bool{})
	if assert.Len(t, em.Events, 2) {
		assert.Equal(t, "away", em.Events[1].State())
	}

	// answering again flips straight back
	service.update(hosts, map[string]bool{"phone.alex": true})
	if assert.Len(t, em.Events, 3) {
		assert.Equal(t, "home", em.Events[2].State())
	}
}
