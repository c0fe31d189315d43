package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/eshop-api/internal/domain"
)

// Códigos SQLSTATE usados por los adaptadores.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapWriteError traduce violaciones de constraints a errores de dominio.
// FK en escritura: la fila referenciada no existe (insert/update) o aún está referenciada (delete).
func mapWriteError(err error, op string, deleting bool) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.ErrDuplicate
	case codeCheckViolation:
		return domain.ErrInvalidInput
	case codeForeignKeyViolation:
		if deleting {
			return domain.ErrConflict
		}
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// likePattern arma un patrón ILIKE de subcadena escapando los comodines del usuario.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
