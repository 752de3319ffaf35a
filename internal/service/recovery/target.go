package recovery

import (
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

// Target is the account a recovery request resolved to
// It is one of ActiveUser, NukedUser or NoSuchUser
type Target interface {
	isTarget()
}

// ActiveUser may receive recovery email
type ActiveUser struct {
	User models.User
}

// NukedUser exists but was banned, treated as absent towards clients
type NukedUser struct {
	User models.User
}

type NoSuchUser struct{}

func (ActiveUser) isTarget() {}
func (NukedUser) isTarget()  {}
func (NoSuchUser) isTarget() {}

func targetOf(user models.User) Target {
	if user.IsNuked() {
		return NukedUser{User: user}
	}
	return ActiveUser{User: user}
}
