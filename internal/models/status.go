package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions maps every known status to the statuses it may move to.
// Terminal statuses map to nil.
type transitions[S ~string] map[S][]S

func (t transitions[S]) check(from, to S) error {
	if _, ok := t[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	for _, next := range t[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

var invoiceTransitions = transitions[InvoiceStatus]{
	InvoiceDraft:   {InvoiceSent, InvoicePaid},
	InvoiceSent:    {InvoicePaid, InvoiceOverdue},
	InvoiceOverdue: {InvoicePaid},
	InvoicePaid:    nil,
}

func (s InvoiceStatus) Valid() bool { _, ok := invoiceTransitions[s]; return ok }

// TransitionTo returns an error unless the invoice may move from s to next.
func (s InvoiceStatus) TransitionTo(next InvoiceStatus) error {
	return invoiceTransitions.check(s, next)
}

type PurchaseOrderStatus string

const (
	PODraft     PurchaseOrderStatus = "Draft"
	POSent      PurchaseOrderStatus = "Sent"
	POConfirmed PurchaseOrderStatus = "Confirmed"
	POReceived  PurchaseOrderStatus = "Received"
	POCancelled PurchaseOrderStatus = "Cancelled"
)

var purchaseOrderTransitions = transitions[PurchaseOrderStatus]{
	PODraft:     {POSent, POConfirmed, POReceived, POCancelled},
	POSent:      {POConfirmed, POReceived, POCancelled},
	POConfirmed: {POReceived, POCancelled},
	POReceived:  nil,
	POCancelled: nil,
}

func (s PurchaseOrderStatus) Valid() bool { _, ok := purchaseOrderTransitions[s]; return ok }

func (s PurchaseOrderStatus) TransitionTo(next PurchaseOrderStatus) error {
	return purchaseOrderTransitions.check(s, next)
}

type SalesOrderStatus string

const (
	SOPending   SalesOrderStatus = "Pending"
	SOConfirmed SalesOrderStatus = "Confirmed"
	SOCompleted SalesOrderStatus = "Completed"
	SOCancelled SalesOrderStatus = "Cancelled"
)

var salesOrderTransitions = transitions[SalesOrderStatus]{
	SOPending:   {SOConfirmed, SOCompleted, SOCancelled},
	SOConfirmed: {SOCompleted, SOCancelled},
	SOCompleted: nil,
	SOCancelled: nil,
}

func (s SalesOrderStatus) Valid() bool { _, ok := salesOrderTransitions[s]; return ok }

func (s SalesOrderStatus) TransitionTo(next SalesOrderStatus) error {
	return salesOrderTransitions.check(s, next)
}

type PackageStatus string

const (
	PackagePending        PackageStatus = "Pending"
	PackageInTransit      PackageStatus = "In Transit"
	PackageReady          PackageStatus = "Ready for Pickup"
	PackageOutForDelivery PackageStatus = "Out for Delivery"
	PackageFailed         PackageStatus = "Delivery Failed"
	PackageDelivered      PackageStatus = "Delivered"
	PackageException      PackageStatus = "Exception"
)

var packageTransitions = transitions[PackageStatus]{
	PackagePending:        {PackageInTransit, PackageException, PackageDelivered},
	PackageInTransit:      {PackageReady, PackageOutForDelivery, PackageDelivered, PackageFailed, PackageException},
	PackageReady:          {PackageDelivered, PackageException},
	PackageOutForDelivery: {PackageDelivered, PackageFailed, PackageException},
	PackageFailed:         {PackageInTransit, PackageOutForDelivery, PackageException},
	PackageException:      {PackageInTransit, PackagePending, PackageDelivered},
	PackageDelivered:      nil,
}

func (s PackageStatus) Valid() bool { _, ok := packageTransitions[s]; return ok }

// TransitionTo allows repeating the current status so progress events
// (a new location, a new scan) can be recorded without a status change.
func (s PackageStatus) TransitionTo(next PackageStatus) error {
	if s == next && s.Valid() && s != PackageDelivered {
		return nil
	}
	return packageTransitions.check(s, next)
}
