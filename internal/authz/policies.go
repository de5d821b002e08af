package authz

// defaultPolicies grant admins every back-end action. Editors reach the
// archives mounted in principal.jobs; the archive level create and delete
// rights come from principal.jobp. Members view unprotected archives and
// protected archives sharing one of their groups.
const defaultPolicies = `
@id("admin")
permit(
  principal,
  action in [Jobs::Action::"access", Jobs::Action::"createArchive", Jobs::Action::"deleteArchive"],
  resource
) when {
  principal.admin
};

@id("mounted-archive")
permit(
  principal,
  action == Jobs::Action::"access",
  resource
) when {
  principal.jobs.contains(resource.id)
};

@id("create-archives")
permit(
  principal,
  action == Jobs::Action::"createArchive",
  resource
) when {
  principal.jobp.contains("create")
};

@id("delete-archives")
permit(
  principal,
  action == Jobs::Action::"deleteArchive",
  resource
) when {
  principal.jobp.contains("delete")
};

@id("public-archive")
permit(
  principal,
  action == Jobs::Action::"view",
  resource
) when {
  !resource.protected
};

@id("member-groups")
permit(
  principal,
  action == Jobs::Action::"view",
  resource
) when {
  resource.protected && principal.groups.containsAny(resource.groups)
};
`
