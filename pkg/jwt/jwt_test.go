package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate(secret, "gestion", "user-1", "Camille", time.Minute)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, "gestion", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Camille", claims.Name)
}

func TestParse_Rechazos(t *testing.T) {
	valid, _ := jwt.Generate(secret, "gestion", "user-1", "", time.Minute)
	expired, _ := jwt.Generate(secret, "gestion", "user-1", "", -time.Minute)
	noSubject, _ := jwt.Generate(secret, "gestion", "", "", time.Minute)

	_, err := jwt.Parse("other-secret", "gestion", valid)
	assert.Error(t, err, "firma incorrecta")

	_, err = jwt.Parse(secret, "otro-emisor", valid)
	assert.Error(t, err, "emisor incorrecto")

	_, err = jwt.Parse(secret, "gestion", expired)
	assert.Error(t, err, "expirado")

	_, err = jwt.Parse(secret, "gestion", noSubject)
	assert.ErrorIs(t, err, jwt.ErrMissingActor)

	_, err = jwt.Parse("", "gestion", valid)
	assert.Error(t, err)
}
