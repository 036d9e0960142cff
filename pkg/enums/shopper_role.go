package enums

// ShopperRole distinguishes storefront customers from back-office staff.
type ShopperRole string

const (
	ShopperRoleCustomer ShopperRole = "customer"
	ShopperRoleAdmin    ShopperRole = "admin"
)

// IsValid reports whether the value is a known ShopperRole.
func (r ShopperRole) IsValid() bool {
	return r == ShopperRoleCustomer || r == ShopperRoleAdmin
}
