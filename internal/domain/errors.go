package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los mensajes se muestran tal cual al usuario final (francés).
var (
	ErrNotFound          = errors.New("ressource introuvable")
	ErrProductNotFound   = errors.New("produit introuvable")
	ErrNoStockRecord     = errors.New("aucun enregistrement de stock")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrInvalidInput      = errors.New("données invalides")
	ErrAlreadyExists     = errors.New("ressource déjà existante")
	ErrConflict          = errors.New("conflit avec l'état actuel")
	ErrUnauthorized      = errors.New("non autorisé")
)

// Nombres de entidades usados en los mensajes.
const (
	EntityProduct       = "Produit"
	EntityPurchaseOrder = "Bon de commande"
	EntityDeliveryNote  = "Bon de livraison"
	EntityCancellation  = "Annulation"
	EntityInvoice       = "Facture"
	EntityPayment       = "Paiement"
)

// ProductNotFoundError el producto referenciado por una línea no existe.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Produit introuvable : %s", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// NoStockRecordError una salida sobre un producto sin fila de stock.
type NoStockRecordError struct {
	ProductID   string
	ProductName string
}

func (e *NoStockRecordError) Error() string {
	return fmt.Sprintf("Aucun stock enregistré pour le produit %s", label(e.ProductName, e.ProductID))
}

func (e *NoStockRecordError) Unwrap() error { return ErrNoStockRecord }

// InsufficientStockError lleva la cantidad disponible y la solicitada para diagnóstico.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Current     decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuffisant pour le produit %s : disponible %s, demandé %s",
		label(e.ProductName, e.ProductID), FormatQuantity(e.Current), FormatQuantity(e.Requested))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError entrada inválida (cantidad cero o negativa, campo obligatorio ausente...).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "Données invalides : " + e.Reason
	}
	return fmt.Sprintf("Données invalides (%s) : %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError documento inexistente.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s introuvable : %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError número legible de documento duplicado.
type AlreadyExistsError struct {
	Entity string
	Number string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s déjà existant : %s", e.Entity, e.Number)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// ConflictError la operación no es compatible con el estado del documento.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewValidation construye un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewAlreadyExists construye un AlreadyExistsError.
func NewAlreadyExists(entity, number string) error {
	return &AlreadyExistsError{Entity: entity, Number: number}
}

// NewConflict construye un ConflictError.
func NewConflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// internalMessage se devuelve al usuario cuando el error no pertenece a la taxonomía.
const internalMessage = "Une erreur interne est survenue"

// UserMessage devuelve el mensaje apto para el usuario final.
// Los errores de infraestructura no se exponen.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsDomainError(err) {
		return err.Error()
	}
	return internalMessage
}

// IsDomainError indica si err pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrProductNotFound, ErrNoStockRecord, ErrInsufficientStock,
		ErrInvalidInput, ErrAlreadyExists, ErrConflict, ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func label(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
