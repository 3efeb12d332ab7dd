package auth

import "github.com/frahmantamala/petirpay/internal"

const (
	CapManageTariffs        = "manage_tariffs"
	CapManagePaymentMethods = "manage_payment_methods"
	CapManageStaff          = "manage_staff"
	CapManageCustomers      = "manage_customers"
	CapCreateBills          = "create_bills"
	CapVerifyPayments       = "verify_payments"
	CapRecordPayments       = "record_payments"
	CapViewReports          = "view_reports"
	CapViewActivity         = "view_activity"
	CapSubmitPayments       = "submit_payments"
	CapViewOwnBills         = "view_own_bills"
)

const (
	RoleAdministrator = "administrator"
	RoleStaff         = "staff"
	RoleCustomer      = "customer"
)

// Role is a named, fixed set of capabilities. Route guards ask for a
// capability, never for a role name.
type Role struct {
	Name         string
	Kind         internal.PrincipalKind
	Capabilities []string
}

var roles = map[string]Role{
	RoleAdministrator: {
		Name: RoleAdministrator,
		Kind: internal.PrincipalStaff,
		Capabilities: []string{
			CapManageTariffs, CapManagePaymentMethods, CapManageStaff, CapManageCustomers,
			CapCreateBills, CapVerifyPayments, CapRecordPayments, CapViewReports, CapViewActivity,
		},
	},
	RoleStaff: {
		Name: RoleStaff,
		Kind: internal.PrincipalStaff,
		Capabilities: []string{
			CapManageCustomers, CapCreateBills, CapVerifyPayments, CapRecordPayments, CapViewReports,
		},
	},
	RoleCustomer: {
		Name:         RoleCustomer,
		Kind:         internal.PrincipalCustomer,
		Capabilities: []string{CapSubmitPayments, CapViewOwnBills},
	},
}

// RoleFor looks up a role by name. Unknown names get no capabilities.
func RoleFor(name string) (Role, bool) {
	r, ok := roles[name]
	return r, ok
}

func (r Role) Can(capability string) bool {
	for _, c := range r.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
