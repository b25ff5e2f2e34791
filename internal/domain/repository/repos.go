package repository

// Repos agrupa los repositorios ligados a una misma unidad de trabajo (pool o transacción).
type Repos struct {
	Products       ProductRepository
	Stock          StockRepository
	Movements      StockMovementRepository
	PurchaseOrders PurchaseOrderRepository
	DeliveryNotes  DeliveryNoteRepository
	Cancellations  CancellationRepository
	Invoices       InvoiceRepository
	Sequences      SequenceRepository
}
